package cmd

import (
	"bufio"
	"fmt"
	"io"
)

func waitForEnter(in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "=== PRESS ENTER TO PROCEED ===")
	_, _ = bufio.NewReader(in).ReadString('\n')
}
