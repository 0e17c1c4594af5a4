package cli

import (
	"bytes"
	"path/filepath"
	"testing"
)

// scriptedPrompter answers prompts from a fixed list. Answers rejected by the
// validator are recorded and the next answer is tried, like a re-prompt.
type scriptedPrompter struct {
	answers  []string
	rejected []string
	messages []string
}

func (p *scriptedPrompter) Input(message, help string, validate func(string) error) (string, error) {
	p.messages = append(p.messages, message)
	for len(p.answers) > 0 {
		answer := p.answers[0]
		p.answers = p.answers[1:]
		if err := validate(answer); err != nil {
			p.rejected = append(p.rejected, answer)
			continue
		}
		return answer, nil
	}
	return "", ErrAborted
}

// execute runs the root command with an isolated config file.
func execute(t *testing.T, prompter Prompter, args ...string) (string, error) {
	t.Helper()
	return executeWith(t, filepath.Join(t.TempDir(), "config.json"), prompter, args...)
}

// executeWith runs the root command against cfgPath. Results go to a
// temporary directory instead of ./results.
func executeWith(t *testing.T, cfgPath string, prompter Prompter, args ...string) (string, error) {
	t.Helper()
	if prompter == nil {
		prompter = &scriptedPrompter{}
	}
	t.Setenv("EQGO_RESULTS_DIR", filepath.Join(t.TempDir(), "results"))

	cmd := newRootCmd(prompter)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := cmd.Execute()
	return out.String(), err
}
