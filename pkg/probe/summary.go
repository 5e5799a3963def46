package probe

// Summary aggregates a set of checks into the counts the briefing and
// status views report.
type Summary struct {
	TotalSystems   int      `json:"total_systems"`
	Healthy        int      `json:"healthy"`
	NeedsAttention int      `json:"needs_attention"`
	NotRunning     int      `json:"not_running"`
	AttentionItems []string `json:"attention_items"`
}

// healthyStatuses are the per-subsystem statuses that count as fine.
var healthyStatuses = map[string]bool{
	"watching":  true,
	"connected": true,
	"synced":    true,
	"installed": true,
}

// attentionStatuses count toward needs-attention; everything else is
// not running.
var attentionStatuses = map[string]bool{
	"stale":  true,
	"loaded": true,
}

// Summarize flattens checks into counts and attention items of the
// form "icon name: item".
func Summarize(checks []Check) Summary {
	s := Summary{TotalSystems: len(checks), AttentionItems: []string{}}
	for _, check := range checks {
		for _, item := range check.Attention {
			s.AttentionItems = append(s.AttentionItems, check.Icon+" "+check.Name+": "+item)
		}
		switch {
		case healthyStatuses[check.Status]:
			s.Healthy++
		case attentionStatuses[check.Status]:
			s.NeedsAttention++
		default:
			s.NotRunning++
		}
	}
	return s
}
