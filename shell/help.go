package shell

import (
	"embed"
	"strings"
)

//go:embed helptext/*.txt
var helptext embed.FS

func usage(topic string) (*Response, error) {
	dat, err := helptext.ReadFile("helptext/" + topic + ".txt")
	if err != nil {
		return msg("There is no help text for the topic " + topic), nil
	}
	return msg(strings.TrimRight(string(dat), "\n")), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return usage("usage")
	}
	return usage(cmd.args[0])
}
