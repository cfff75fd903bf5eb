package command

import "github.com/starford/raido/internal/models"

// memoKey identifies a memo by its position and exact command text. Both
// must match for a note to survive a sync; a command that moves to a new
// position loses its note even if the text reappears elsewhere. That is a
// deliberate, conservative policy, not an accident.
type memoKey struct {
	order int
	text  string
}

type memoPayload struct {
	memoText string
	noteLink string
}

// SyncMemos rebuilds the memo list for bundleID so it mirrors commandText
// one-to-one. Existing payloads are carried over where (order, command text)
// is unchanged; new or shifted positions start with empty payloads. The
// returned list always has exactly one memo per normalized command, ordered
// 1..N with no gaps.
func SyncMemos(bundleID int, existing []models.CommandMemo, commandText string) []models.CommandMemo {
	commands := Normalize(commandText)

	prev := make(map[memoKey]memoPayload, len(existing))
	for _, m := range existing {
		prev[memoKey{order: m.Order, text: m.CommandText}] = memoPayload{
			memoText: m.MemoText,
			noteLink: m.NoteLink,
		}
	}

	memos := make([]models.CommandMemo, 0, len(commands))
	for i, cmd := range commands {
		order := i + 1
		payload := prev[memoKey{order: order, text: cmd}]
		memos = append(memos, models.CommandMemo{
			BundleID:    bundleID,
			Order:       order,
			CommandText: cmd,
			MemoText:    payload.memoText,
			NoteLink:    payload.noteLink,
		})
	}
	return memos
}

// ApplyNotes merges note updates into memos in place, matched by order.
// Updates referencing unknown orders are ignored.
func ApplyNotes(memos []models.CommandMemo, updates []models.CommandMemo) {
	byOrder := make(map[int]int, len(memos))
	for i, m := range memos {
		byOrder[m.Order] = i
	}
	for _, u := range updates {
		if i, ok := byOrder[u.Order]; ok {
			memos[i].MemoText = u.MemoText
			memos[i].NoteLink = u.NoteLink
		}
	}
}
