// Beancounter CLI entry point
//
// Beancounter reports how many tokens, words and characters a text file
// holds under a chosen tokenizer, so prompt budgets can be checked before
// sending text to a model.
package main

import "github.com/jbctechsolutions/beancounter/internal/presentation/cli/commands"

func main() {
	commands.Execute()
}
