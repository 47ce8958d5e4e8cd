package glubblog

import (
	"context"

	"github.com/pkg/errors"
)

const TabMain = "Root.Content.Main"

type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextArea FieldKind = "textarea"
	FieldCheckbox FieldKind = "checkbox"
	FieldDropdown FieldKind = "dropdown"
)

type Option struct {
	Value string
	Label string
}

// Field declares one editable field. Rendering is up to the admin UI.
type Field struct {
	Tab     string
	Name    string
	Label   string
	Kind    FieldKind
	Value   string
	Options []Option
}

// EditableFieldSet is the ordered list of fields of the CMS edit form.
type EditableFieldSet struct {
	fields []Field
}

func (fs *EditableFieldSet) AddFieldToTab(tab string, f Field) {
	f.Tab = tab
	fs.fields = append(fs.fields, f)
}

// RemoveField reports whether a field called name existed.
func (fs *EditableFieldSet) RemoveField(name string) bool {
	kept := make([]Field, 0, len(fs.fields))
	for _, f := range fs.fields {
		if f.Name != name {
			kept = append(kept, f)
		}
	}
	removed := len(kept) != len(fs.fields)
	fs.fields = kept
	return removed
}

func (fs EditableFieldSet) Field(name string) (Field, bool) {
	for _, f := range fs.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (fs EditableFieldSet) Fields() []Field {
	return append([]Field(nil), fs.fields...)
}

func (fs EditableFieldSet) Names() []string {
	ret := make([]string, len(fs.fields))
	for i, f := range fs.fields {
		ret[i] = f.Name
	}
	return ret
}

// FieldTransform lets extensions change the field set.
type FieldTransform func(EditableFieldSet) EditableFieldSet

// Editor builds the CMS fields of blog holders.
type Editor struct {
	owners     *OwnerResolver
	transforms []FieldTransform
}

func NewEditor(owners *OwnerResolver) *Editor {
	return &Editor{owners: owners}
}

// UpdateCMSFields registers t. Transforms run once per Fields call, in registration order.
func (e *Editor) UpdateCMSFields(t FieldTransform) {
	e.transforms = append(e.transforms, t)
}

func (e *Editor) Fields(ctx context.Context, h BlogHolder) (EditableFieldSet, error) {
	owners, err := e.owners.Resolve(ctx, SortByName, Ascending)
	if err != nil {
		return EditableFieldSet{}, errors.Wrap(err, "Cannot resolve blog owners")
	}

	var fs EditableFieldSet
	fs.AddFieldToTab(TabMain, Field{Name: "Title", Label: "Page name", Kind: FieldText, Value: h.Title})
	fs.AddFieldToTab(TabMain, Field{Name: "URLSegment", Label: "URL", Kind: FieldText, Value: h.URLSegment})
	fs.AddFieldToTab(TabMain, Field{Name: "Content", Label: "Content", Kind: FieldTextArea, Value: h.Content})

	fs.AddFieldToTab(TabMain, Field{
		Name:  "TrackBacksEnabled",
		Label: "Enable TrackBacks",
		Kind:  FieldCheckbox,
		Value: checkbox(h.Config.TrackbacksEnabled),
	})
	opts := make([]Option, 0, len(owners)+1)
	opts = append(opts, Option{Value: "", Label: "None"})
	for _, o := range owners {
		opts = append(opts, Option{Value: o.ID, Label: o.Name})
	}
	fs.AddFieldToTab(TabMain, Field{
		Name:    "OwnerID",
		Label:   "Blog owner",
		Kind:    FieldDropdown,
		Value:   h.Config.OwnerID,
		Options: opts,
	})
	fs.AddFieldToTab(TabMain, Field{
		Name:  "AllowCustomAuthors",
		Label: "Allow non-admins to have a custom author field",
		Kind:  FieldCheckbox,
		Value: checkbox(h.Config.AllowCustomAuthors),
	})

	for _, t := range e.transforms {
		fs = t(fs)
	}
	return fs, nil
}

func checkbox(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
