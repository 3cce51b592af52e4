package score

import (
	"strconv"
	"strings"
)

// TuneArgs splits a tuning command into its lower-cased name and numeric
// arguments. Arguments may be separated by spaces or commas; any argument
// that is not a number makes ok false.
func TuneArgs(cmd string) (name string, args []float64, ok bool) {
	fields := strings.Fields(strings.ReplaceAll(cmd, ",", " "))
	if len(fields) == 0 {
		return "", nil, false
	}
	name = strings.ToLower(fields[0])
	for _, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return name, nil, false
		}
		args = append(args, v)
	}
	return name, args, true
}
