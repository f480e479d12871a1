package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/capgains/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type assistCmd struct {
	reportFlags
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "ask questions about the gains report" }
func (*assistCmd) Usage() string {
	return `cgt assist [-from <date>] [-asof <date>] [<question>...]

  Starts an interactive session with an assistant that knows the gains
  report. The questions given as arguments are asked first.
  Requires GEMINI_API_KEY or GOOGLE_API_KEY in the environment (or .env).
`
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, report, err := c.calculate(ctx)
	if err != nil {
		return failure(err)
	}
	model := cfg.GeminiModel
	if model == "" {
		model = agent.DefaultModel
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return failure(err)
	}

	researcher := agent.NewResearcher(model)
	accountant := agent.NewAccountant(model, report)
	if err := agent.New(os.Stdout, os.Stdin, model, researcher, accountant).Run(ctx, client, f.Args()...); err != nil {
		return failure(err)
	}
	return subcommands.ExitSuccess
}
