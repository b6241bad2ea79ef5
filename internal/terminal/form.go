package terminal

import (
	"context"
	"errors"
	"strings"

	"github.com/comigor/tenant-console/internal/dialog"
	"github.com/comigor/tenant-console/internal/directory"
)

// form walks the fields of the active dialog one prompt at a time.
type form struct {
	fields  []dialog.Field
	pending []int
	values  map[string]string
}

func newForm(fields []dialog.Field) *form {
	f := &form{fields: fields, values: make(map[string]string, len(fields))}
	for i, field := range fields {
		f.pending = append(f.pending, i)
		if field.Value != "" {
			f.values[field.Key] = field.Value
		}
	}
	return f
}

func (f *form) current() dialog.Field {
	field := f.fields[f.pending[0]]
	if v, ok := f.values[field.Key]; ok {
		field.Value = v
	}
	return field
}

// set records the answer for the current field. Blank input keeps the
// pre-filled value. It reports whether every field has been answered.
func (f *form) set(input string) bool {
	field := f.current()
	if v := strings.TrimSpace(input); v != "" {
		f.values[field.Key] = v
	} else if field.Value == "" {
		f.values[field.Key] = ""
	}
	f.pending = f.pending[1:]
	return len(f.pending) == 0
}

// retry queues the named fields again. It reports false when none of them
// belong to this form.
func (f *form) retry(keys []string) bool {
	f.pending = f.pending[:0]
	for i, field := range f.fields {
		for _, k := range keys {
			if field.Key == k {
				f.pending = append(f.pending, i)
				delete(f.values, k)
				break
			}
		}
	}
	return len(f.pending) > 0
}

func (c *Console) openDialog(d dialog.Dialog) {
	c.dialogs.Open(d)
	c.form = newForm(dialog.Fields(d))
	infoStyle.Fprintln(c.out, dialog.Title(d)+" (/cancel to discard)")
}

func (c *Console) closeDialog() {
	c.dialogs.Close()
	c.form = nil
}

func (c *Console) fillField(ctx context.Context, line string) error {
	if strings.TrimSpace(line) == "/cancel" {
		c.closeDialog()
		c.printf("Cancelled.")
		return nil
	}
	if !c.form.set(line) {
		return nil
	}

	msg, err := dialog.Submit(ctx, c.dir, c.dialogs.Active(), c.tenantID, c.form.values)
	if err != nil {
		c.errorf("%v", err)
		// the dialog stays open on validation failures so the operator can
		// fix the listed fields
		var verr *directory.ValidationError
		if errors.As(err, &verr) && c.form.retry(verr.Fields) {
			return nil
		}
		c.closeDialog()
		return nil
	}
	c.closeDialog()
	c.printf("%s", msg)
	return nil
}
