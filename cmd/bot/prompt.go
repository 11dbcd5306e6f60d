package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/steelproxy/twitta/internal/composer"
)

// terminalPrompter asks the operator for approval decisions on stdin.
type terminalPrompter struct {
	reader *bufio.Reader
}

var _ composer.Prompter = (*terminalPrompter)(nil)

func newTerminalPrompter() *terminalPrompter {
	return &terminalPrompter{reader: bufio.NewReader(os.Stdin)}
}

func (p *terminalPrompter) readLine(prompt string) string {
	fmt.Print(prompt)
	line, _ := p.reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// RequestApproval blocks until the operator accepts, rejects, or edits
// the draft. Unknown input re-asks.
func (p *terminalPrompter) RequestApproval(draft string) composer.Approval {
	for {
		choice := p.readLine(fmt.Sprintf("Is this response ok? %s (y/n/e - will be regenerated if n - e will edit prompt for this run): ", draft))
		switch choice {
		case "y":
			return composer.Approval{Decision: composer.Accept}
		case "n":
			return composer.Approval{Decision: composer.Reject}
		case "e":
			template := p.readLine("Enter a new prompt using {tweet_text} as a placeholder for the tweet: ")
			return composer.Approval{Decision: composer.Edit, NewTemplate: template}
		}
	}
}

// RequestPostConfirmation asks whether the final reply should be posted.
func (p *terminalPrompter) RequestPostConfirmation(text string) bool {
	return p.readLine(fmt.Sprintf("Would you like to post this tweet?: %q (y/n): ", text)) == "y"
}
