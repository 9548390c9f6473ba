package simg

import (
	"fmt"
	"strings"
)

// CommandKind identifies the variant of a Command.
type CommandKind int

const (
	// KindUnknown is reported for a nil command.
	KindUnknown CommandKind = iota
	KindPutObject
	KindDeleteObject
)

func (k CommandKind) String() string {
	switch k {
	case KindPutObject:
		return "PutObject"
	case KindDeleteObject:
		return "DeleteObject"
	default:
		return "Unknown"
	}
}

// Command is an immutable description of one requested operation.
// The set of implementations is closed: PutObjectCommand and DeleteObjectCommand.
type Command interface {
	Kind() CommandKind
	Folder() string
	Filename() string

	command()
}

// PutObjectCommand asks the service to store body as folder/filename.
type PutObjectCommand struct {
	folder   string
	filename string
	body     []byte
}

// NewPutObjectCommand validates the fields and returns a PutObjectCommand.
// The body is copied, so later changes to the caller's slice are not observed.
func NewPutObjectCommand(folder, filename string, body []byte) (PutObjectCommand, error) {
	if err := checkFields(folder, filename, body, true); err != nil {
		return PutObjectCommand{}, err
	}

	return PutObjectCommand{
		folder:   folder,
		filename: filename,
		body:     append([]byte(nil), body...),
	}, nil
}

func (PutObjectCommand) Kind() CommandKind  { return KindPutObject }
func (c PutObjectCommand) Folder() string   { return c.folder }
func (c PutObjectCommand) Filename() string { return c.filename }

// Body returns a copy of the payload.
func (c PutObjectCommand) Body() []byte { return append([]byte(nil), c.body...) }

// Size is the payload length in bytes.
func (c PutObjectCommand) Size() int { return len(c.body) }

func (PutObjectCommand) command() {}

// DeleteObjectCommand asks the service to remove folder/filename.
type DeleteObjectCommand struct {
	folder   string
	filename string
}

// NewDeleteObjectCommand validates the fields and returns a DeleteObjectCommand.
func NewDeleteObjectCommand(folder, filename string) (DeleteObjectCommand, error) {
	if err := checkFields(folder, filename, nil, false); err != nil {
		return DeleteObjectCommand{}, err
	}

	return DeleteObjectCommand{folder: folder, filename: filename}, nil
}

func (DeleteObjectCommand) Kind() CommandKind  { return KindDeleteObject }
func (c DeleteObjectCommand) Folder() string   { return c.folder }
func (c DeleteObjectCommand) Filename() string { return c.filename }

func (DeleteObjectCommand) command() {}

func checkFields(folder, filename string, body []byte, needBody bool) error {
	var missing []string
	if folder == "" {
		missing = append(missing, "folder")
	}
	if filename == "" {
		missing = append(missing, "filename")
	}
	if needBody && len(body) == 0 {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrCommandValidation, strings.Join(missing, ", "))
	}
	return nil
}

// asPut and asDelete accept both the value and a non-nil pointer form of a
// command, since the value methods make *PutObjectCommand a Command too.
func asPut(cmd Command) (PutObjectCommand, bool) {
	switch c := cmd.(type) {
	case PutObjectCommand:
		return c, true
	case *PutObjectCommand:
		if c != nil {
			return *c, true
		}
	}
	return PutObjectCommand{}, false
}

func asDelete(cmd Command) (DeleteObjectCommand, bool) {
	switch c := cmd.(type) {
	case DeleteObjectCommand:
		return c, true
	case *DeleteObjectCommand:
		if c != nil {
			return *c, true
		}
	}
	return DeleteObjectCommand{}, false
}

// kindOf reports KindUnknown for nil commands, including nil pointers.
func kindOf(cmd Command) CommandKind {
	switch c := cmd.(type) {
	case nil:
		return KindUnknown
	case *PutObjectCommand:
		if c == nil {
			return KindUnknown
		}
	case *DeleteObjectCommand:
		if c == nil {
			return KindUnknown
		}
	}
	return cmd.Kind()
}

// PutBody returns a copy of the payload of a put command, in value or pointer
// form, and false for anything else.
func PutBody(cmd Command) ([]byte, bool) {
	put, ok := asPut(cmd)
	if !ok {
		return nil, false
	}
	return put.Body(), true
}
