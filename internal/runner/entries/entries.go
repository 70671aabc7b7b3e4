package entries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"eJournalAPI/internal/store"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

type Entries struct {
	User       string
	Collection string

	Docs store.Store
	Out  io.Writer
}

func (e *Entries) Do(ctx context.Context) error {
	if e.Docs == nil {
		return errors.New("can not list entries, no store")
	}

	docs, err := e.Docs.GetAll(ctx, e.User, e.Collection)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	if len(docs) == 0 {
		_, _ = faint.Fprintf(e.Out, "no documents in %s for %s\n", e.Collection, e.User)
		return nil
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 80
	tbl.Wrap = true
	tbl.AddRow(bold.Sprint("Key"), bold.Sprint("Document"))
	for _, key := range slices.Sorted(maps.Keys(docs)) {
		raw, err := json.Marshal(docs[key])
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		tbl.AddRow(key, string(raw))
	}

	_, _ = fmt.Fprintln(e.Out, tbl)
	_, _ = faint.Fprintf(e.Out, "%d documents\n", len(docs))
	return nil
}
