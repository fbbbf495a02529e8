package dedup

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/sells-group/rescue-router/internal/resilience"
	"github.com/sells-group/rescue-router/pkg/anthropic"
)

const llmPhase = "dedup"

// llmRules is the system prompt for the language-model oracle.
const llmRules = `You remove redundant entries from a list of place names. Each input line is "name | distance km" where distance is measured from the search center.
Return the names that should be deleted. Follow every rule:

A. A name may be deleted only if it has at least one near-duplicate partner no more than 2 km away. Similar names alone do not make two places the same entity. Use the distances.
B. A near-duplicate partner is a name that, ignoring whitespace, full-width/half-width differences and punctuation, refers to the same institution with an added sub-unit: a building, school or college, hall, center, department, section, or an in-venue space such as a lobby, front desk or parking lot.
C. Different campuses or zones (东/西/南/北 or any 校区, 园区, 园, 分校, 分院, 院区, 国际校区, 基地, 校门), different store locations (XX店, XX门店) and different communities, housing estates, villages or sub-districts are distinct entities even within 2 km. Never delete them.
D. Within one group keep only the base institution: prefer the name without a building/college/lobby suffix; if several qualify keep the shortest, most generic one.
E. Mark the other members of the group (with 学院, 图书馆, 大堂, 中心, 馆, 楼, 教学楼, 食堂, 停车场, 服务台, 分部, 培训中心, 研究院, 附属, 实验室 and similar) for deletion.
F. Output only names that appear verbatim in the input.
G. A name with no near-duplicate partner must be kept.
H. A shared prefix with a different meaning (XX大学 versus XX大学东校区 or XX大学国际校区) is not a duplicate.
I. If nothing should be deleted, output [].

Output a single JSON array of strings and nothing else.`

// LLMOracle asks a language model which names are redundant. Every request
// goes through the throttle, so concurrent dedup passes share one cap.
type LLMOracle struct {
	client    anthropic.Client
	throttle  *resilience.Throttle
	model     string
	maxTokens int64
}

// NewLLMOracle creates an LLMOracle. A nil throttle never waits.
func NewLLMOracle(client anthropic.Client, throttle *resilience.Throttle, model string, maxTokens int64) *LLMOracle {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if throttle == nil {
		throttle = resilience.Unlimited()
	}
	return &LLMOracle{client: client, throttle: throttle, model: model, maxTokens: maxTokens}
}

// Duplicates implements Oracle.
func (o *LLMOracle) Duplicates(ctx context.Context, candidates []Candidate) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	temp := 0.0
	req := anthropic.MessageRequest{
		Model:       o.model,
		MaxTokens:   o.maxTokens,
		System:      anthropic.CachedSystem(llmRules),
		Messages:    []anthropic.Message{{Role: "user", Content: formatCandidates(candidates)}},
		Temperature: &temp,
	}
	resp, err := resilience.Call(ctx, o.throttle, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return o.client.CreateMessage(ctx, req)
	})
	if err != nil {
		return nil, eris.Wrap(err, "dedup: oracle request")
	}
	resp.Usage.LogCost(o.model, llmPhase)

	return parseNames(resp.Text())
}

func formatCandidates(candidates []Candidate) string {
	var b strings.Builder
	b.WriteString("Data (name | distance km):\n")
	for _, c := range candidates {
		if c.DistanceKM != nil {
			fmt.Fprintf(&b, "%s | %.2f\n", c.Name, *c.DistanceKM)
		} else {
			fmt.Fprintf(&b, "%s | unknown\n", c.Name)
		}
	}
	return b.String()
}

// parseNames extracts the JSON array of strings from a model reply. Text
// around the array, such as a code fence, is ignored.
func parseNames(text string) ([]string, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return nil, eris.Errorf("dedup: oracle reply has no JSON array: %q", truncate(text, 120))
	}
	raw := text[start : end+1]
	if !gjson.Valid(raw) {
		return nil, eris.Errorf("dedup: oracle reply is not valid JSON: %q", truncate(raw, 120))
	}

	var names []string
	for _, v := range gjson.Parse(raw).Array() {
		if v.Type == gjson.String {
			names = append(names, v.String())
		}
	}
	return names, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
