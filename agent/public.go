package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/capgains"
	"github.com/etnz/capgains/docs"
	"github.com/etnz/capgains/renderer"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

func newFacilitator(model string, experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and of solving the user's request.

			Learn about the experts' skills from the Tools and ask them questions.
			They keep the context of your previous questions.

			The user wants to understand the capital gains of their trades for a tax return:
			which sells were matched against which buys, the profit or loss by holding term,
			and what is left unmatched.

			Devise a plan of questions to ask each expert and come up with the best response.
			Check the scrips of the report first, the user will assume you know their codes and names.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewResearcher returns an expert grounded with Google Search, able to find
// corporate actions such as bonus issues or splits.
func NewResearcher(model string) *Expert {
	return &Expert{
		Name: "Researcher",
		Description: `This is an expert of listed companies.
		Ask the Researcher about corporate actions (IPO price, bonus issues, stock splits)
		and their record and execution dates, or any recent public information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert of listed companies. You leverage Google Search to ground your assertions.
			When asked about corporate actions give the record date, the execution date and the ratio
			in the form used by the corporate actions file:

			` + must(docs.GetTopic("corporate-actions"))}}},
		},
	}
}

// NewAccountant returns the expert in charge of the gains report.
func NewAccountant(model string, report *capgains.Report) *Expert {
	lib := Tools(report)
	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant, in charge of the capital gains report.
		It knows every scrip, the gains realized by matching sells against buys, their term,
		the indexed long term gains, and the positions left unmatched.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an accountant in charge of the user's capital gains report.
				Use the Tools to get the relevant figures, do not compute gains yourself.
				Other experts might use an approximate language, figure out what they meant.

				Here is how gains are computed:

			` + must(docs.GetTopics("matching", "indexation"))}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, args map[string]any) (string, error)
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }

// Call runs the function, reporting errors within the response.
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	out, err := f.Func(ctx, args)
	if err != nil {
		return errorResponse(id, f.Decl.Name, err)
	}
	return outputResponse(id, f.Decl.Name, out)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

var scripsParam = &genai.Schema{
	Type:        genai.TypeArray,
	Items:       &genai.Schema{Type: genai.TypeString},
	Description: "The keys of the scrips to report, the scrip code or the scrip name when it has no code. All scrips by default.",
}

// Tools returns the functions answering questions about the report.
func Tools(report *capgains.Report) []Function {
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Scrips",
				Description: "Scrips lists every scrip of the report with its key, code, name, remaining balance and whether all its sells were matched.",
				Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown table of the scrips."},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				return scrips(report), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Gains",
				Description: "Gains details every realized gain of the scrips, with the profit or loss by term, and the totals.",
				Parameters: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: map[string]*genai.Schema{"scrips": scripsParam},
				},
				Response: &genai.Schema{Type: genai.TypeString, Description: "The markdown gains report."},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				r, err := filter(report, args)
				if err != nil {
					return "", err
				}
				return renderer.GainsMarkdown(r), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Unmatched",
				Description: "Unmatched lists the buys still held and the sells that could not be matched against any buy.",
				Parameters: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: map[string]*genai.Schema{"scrips": scripsParam},
				},
				Response: &genai.Schema{Type: genai.TypeString, Description: "The markdown unmatched report."},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				r, err := filter(report, args)
				if err != nil {
					return "", err
				}
				return renderer.UnmatchedMarkdown(r) + "\n" + renderer.FailuresMarkdown(r.Failures()), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name: "Query",
				Description: `Query evaluates a JSONPath expression against the report document.
				The document has "currency", "matched", "totals" (intraday, shortTerm, longTerm, longTermIndexed)
				and "scrips", a list of objects with key, code, name, balance, matched, gains, unmatched and failures.
				Each gain has qty, buyDate, buyPrice, buyValue, ixCost, sellDate, sellPrice, sellValue, term,
				intraday, shortTerm, longTerm, longTermIndexed and description.`,
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"path": {Type: genai.TypeString, Description: `The JSONPath expression, for instance $.scrips[?(@.balance > 0)].key`},
					},
					Required: []string{"path"},
				},
				Response: &genai.Schema{Type: genai.TypeString, Description: "The JSON result."},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				path, ok := args["path"].(string)
				if !ok {
					return "", fmt.Errorf("argument 'path' is not a string as expected but %T", args["path"])
				}
				v, err := report.Query(path)
				if err != nil {
					return "", err
				}
				out, err := json.Marshal(v)
				return string(out), err
			},
		},
	}
}

func scrips(report *capgains.Report) string {
	var b strings.Builder
	fmt.Fprintln(&b, "| Key | Code | Name | Balance | Matched |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|:---|")
	for _, s := range report.Scrips {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %t |\n", s.Key, s.Code, s.Name, s.Balance, s.Matched)
	}
	return b.String()
}

// filter restricts the report to the "scrips" argument, if any.
func filter(report *capgains.Report, args map[string]any) (*capgains.Report, error) {
	iscrips, ok := args["scrips"]
	if !ok {
		return report, nil
	}
	list, ok := iscrips.([]any)
	if !ok {
		return nil, fmt.Errorf("argument 'scrips' is not a list as expected but %T", iscrips)
	}
	if len(list) == 0 {
		return report, nil
	}
	keys := make([]string, 0, len(list))
	for _, e := range list {
		key, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("argument 'scrips' must contain strings, got %T", e)
		}
		if report.Scrip(key) == nil {
			return nil, fmt.Errorf("unknown scrip %q, call Scrips to list the known keys", key)
		}
		keys = append(keys, key)
	}
	return report.Filter(keys...), nil
}
