package task

import (
	"fmt"
	"strings"

	"github.com/secondlabor/laborhub/prompt"
	"github.com/secondlabor/laborhub/types"
)

// updateDigestLimit bounds how many of the most recent progress updates
// are folded into the delivery prompt.
const updateDigestLimit = 6

func buildDeliveryMessage(col *types.Collection, t types.Task) (string, error) {
	names := make([]string, 0, len(t.Participants))
	for _, id := range t.Participants {
		if w := col.FindWorker(id); w != nil {
			names = append(names, w.Name)
		} else {
			names = append(names, id)
		}
	}
	participants := "(none)"
	if len(names) > 0 {
		participants = strings.Join(names, ", ")
	}

	updates := t.Updates
	if len(updates) > updateDigestLimit {
		updates = updates[len(updates)-updateDigestLimit:]
	}
	digest := "(none yet)"
	if len(updates) > 0 {
		lines := make([]string, 0, len(updates))
		for _, u := range updates {
			author := u.WorkerID
			if w := col.FindWorker(u.WorkerID); w != nil {
				author = w.Name
			}
			lines = append(lines, fmt.Sprintf("- %s: %s", author, u.Message))
		}
		digest = strings.Join(lines, "\n")
	}

	return prompt.Render(prompt.DeliveryTemplate, map[string]string{
		"title":        t.Title,
		"laborType":    t.LaborTypeName,
		"budget":       orUnspecified(t.Budget),
		"deadline":     orUnspecified(t.Deadline),
		"description":  t.Description,
		"participants": participants,
		"updates":      digest,
	})
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(unspecified)"
	}
	return s
}
