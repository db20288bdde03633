package main

import "github.com/jamlabs/reimbursement-service/cmd"

func main() {
	cmd.Execute()
}
