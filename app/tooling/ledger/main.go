// This program inspects and feeds a running ledger service.
package main

import "github.com/ardanlabs/blockledger/app/tooling/ledger/cmd"

func main() {
	cmd.Execute()
}
