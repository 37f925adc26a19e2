// Package humansize formats byte counts the way the download mirror has always shown them:
// at most three integer digits, a unit letter from K through P, and a single decimal below ten.
package humansize

import (
	"strconv"
)

const units = " KMGTP" // index 0 is raw bytes: no letter.

// Format renders a byte count.
//
//	Format(500)     // "500"
//	Format(2048)    // "2.0K"
//	Format(10<<20)  // "10M"
//	Format(1536<<10) // "1.5M"
//
// The unit is picked from the number of decimal digits in n, not from its magnitude in powers of 1024,
// so 1000 through 1023 bytes come out as "1.0K".
func Format(n uint64) string {
	factor := (len(strconv.FormatUint(n, 10)) - 1) / 3
	factor = min(factor, len(units)-1)
	scaled := float64(n)
	for i := 0; i < factor; i++ {
		scaled /= 1024
	}
	if factor == 0 {
		return strconv.FormatUint(n, 10)
	}
	prec := 0
	if scaled < 10 {
		prec = 1
	}
	return strconv.FormatFloat(scaled, 'f', prec, 64) + string(units[factor])
}

// FormatKB is Format(1024*kb), for the sizes stored in size_kb sidecar files.
func FormatKB(kb uint64) string { return Format(kb * 1024) }
