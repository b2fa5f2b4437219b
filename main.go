// Command kundali computes Vedic natal charts and Vimshottari dasha periods.
package main

import "github.com/papapumpkin/kundali/cmd"

func main() {
	cmd.Execute()
}
