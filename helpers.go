package polyreg

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// invariant panics with the given statement when validity does not hold. The
// check only runs when DEBUG_LEVEL is at least 1, so validity may be a closure
// doing expensive work.
func invariant(statement string, validity interface{}) {
	if debugLevel() < 1 {
		return
	}
	var notValid bool
	if lambda, ok := validity.(func() bool); ok {
		notValid = !lambda()
	} else if boolean, ok := validity.(bool); ok {
		notValid = !boolean
	}
	if notValid {
		red := color.New(color.FgRed).SprintFunc()
		panic(red("Assertion failed: " + statement))
	}
}

// violation aborts an operation whose caller broke its contract. Unlike
// invariant it is not gated by DEBUG_LEVEL.
func violation(statement string) {
	red := color.New(color.FgRed).SprintFunc()
	panic(red("Model assumption violated: " + statement))
}

func debugLevel() (level int64) {
	level, _ = strconv.ParseInt(os.Getenv("DEBUG_LEVEL"), 10, 64)
	return
}

func debugf(level int64, format string, args ...interface{}) {
	if debugLevel() < level {
		return
	}
	fmt.Printf(format+"\n", args...)
}

// Parses a string of comma seperated floats to produce a slice of floats
func parseCSFloats(csfloats string) (floats []float64, err error) {
	segments := strings.Split(csfloats, ",")
	floats = make([]float64, 0, len(segments))
	var num float64
	for _, seg := range segments {
		num, err = strconv.ParseFloat(strings.TrimSpace(seg), 64)
		if err != nil {
			err = errors.New("Could not parse float64 from: " + seg)
			return
		}
		floats = append(floats, num)
	}
	return
}

// Checks if the given int appears in the given slice of ints
func intInSlice(s int, ints []int) bool {
	for _, integer := range ints {
		if s == integer {
			return true
		}
	}
	return false
}
