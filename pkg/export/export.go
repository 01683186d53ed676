// Package export writes a solved Schedule to common file formats for
// downstream consumption outside the solver process.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/alderwick/gridsched/core/model"
	"github.com/alderwick/gridsched/core/result"
)

// constantRow is the JSON/CSV projection of one assigned constant action.
type constantRow struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Power float64   `json:"power_watt"`
}

// WriteJSON writes the assigned constant actions named in ids to w in
// JSON format.
func WriteJSON(w io.Writer, sched result.Schedule, ids []string) error {
	rows := make([]constantRow, 0, len(ids))
	for _, id := range ids {
		a, ok := sched.Constant(id)
		if !ok {
			continue
		}
		rows = append(rows, constantRow{ID: a.ID, Start: a.Start, End: a.End, Power: float64(a.Power)})
	}
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteCSV writes the assigned constant actions named in ids to w as CSV
// with a header row.
func WriteCSV(w io.Writer, sched result.Schedule, ids []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "start", "end", "power_watt"}); err != nil {
		return err
	}
	for _, id := range ids {
		a, ok := sched.Constant(id)
		if !ok {
			continue
		}
		rec := []string{
			a.ID,
			a.Start.Format(time.RFC3339),
			a.End.Format(time.RFC3339),
			strconv.FormatFloat(float64(a.Power), 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// constantActionIDs extracts the identifiers of a batch of constant
// actions, for callers that want every assignment written rather than a
// hand-picked subset.
func constantActionIDs(actions []model.ConstantAction) []string {
	ids := make([]string, len(actions))
	for i, a := range actions {
		ids[i] = a.ID
	}
	return ids
}

// WriteAllJSON writes every constant action in actions present in sched.
func WriteAllJSON(w io.Writer, sched result.Schedule, actions []model.ConstantAction) error {
	return WriteJSON(w, sched, constantActionIDs(actions))
}

// WriteAllCSV writes every constant action in actions present in sched.
func WriteAllCSV(w io.Writer, sched result.Schedule, actions []model.ConstantAction) error {
	return WriteCSV(w, sched, constantActionIDs(actions))
}
