package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/delivtrack-go/internal/cli/repl"
)

// ask runs a prompt on the app's own streams. On a terminal it is an
// interactive survey prompt; otherwise one line of the app's input is the
// answer, so piped shell sessions and scripts can answer prompts too.
func ask(c *cli.Context, p survey.Prompt, response interface{}) error {
	in, inOK := c.App.Reader.(*os.File)
	out, outOK := c.App.Writer.(*os.File)
	if inOK && outOK && isatty.IsTerminal(in.Fd()) {
		return survey.AskOne(p, response, survey.WithStdio(in, out, c.App.ErrWriter))
	}
	return askLine(c, p, response)
}

func askLine(c *cli.Context, p survey.Prompt, response interface{}) error {
	var message, def string
	trim := true
	switch p := p.(type) {
	case *survey.Input:
		message, def = p.Message, p.Default
	case *survey.Password:
		message, trim = p.Message, false
	case *survey.Confirm:
		message = p.Message + " (y/N)"
		if p.Default {
			message, def = p.Message+" (Y/n)", "y"
		}
	default:
		return fmt.Errorf("prompt %T needs a terminal", p)
	}

	fmt.Fprintf(c.App.Writer, "%s: ", message)
	line, err := repl.ReadLine(c.App.Reader)
	if err != nil {
		return err
	}
	if trim {
		line = strings.TrimSpace(line)
	}
	if line == "" {
		line = def
	}

	switch r := response.(type) {
	case *string:
		*r = line
	case *bool:
		switch strings.ToLower(line) {
		case "y", "yes":
			*r = true
		default:
			*r = false
		}
	default:
		return fmt.Errorf("unsupported prompt response %T", response)
	}
	return nil
}
