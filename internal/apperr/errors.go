// Package apperr defines the sentinel errors shared across the application.
//
// Operations wrap these with fmt.Errorf("%w: ...") to attach the offending
// identifier, heading, or field path; callers test with errors.Is.
package apperr

import "errors"

var (
	// ErrInvalidIdentifier marks a note identifier that failed validation
	// (empty, absolute, traversal segments, or escaping the vault root).
	ErrInvalidIdentifier = errors.New("invalid note identifier")

	// ErrInvalidFolderPath marks a folder path escaping the vault root.
	ErrInvalidFolderPath = errors.New("invalid folder path")

	// ErrVaultNotFound marks an unknown vault name.
	ErrVaultNotFound = errors.New("vault not found")

	// ErrNoteNotFound marks a missing note file.
	ErrNoteNotFound = errors.New("note not found")

	// ErrFolderNotFound marks a missing folder within a vault.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrNoteAlreadyExists marks a create targeting an existing note.
	ErrNoteAlreadyExists = errors.New("note already exists")

	// ErrHeadingNotFound marks a section operation whose heading lookup failed.
	ErrHeadingNotFound = errors.New("heading not found")

	// ErrFrontmatterParse marks a frontmatter block with malformed YAML.
	ErrFrontmatterParse = errors.New("invalid frontmatter")

	// ErrUnsupportedFieldType marks a frontmatter value that cannot be
	// represented as a YAML-safe scalar, list, or nested map.
	ErrUnsupportedFieldType = errors.New("unsupported frontmatter field type")

	// ErrFrontmatterTooLarge marks a frontmatter block over the size cap.
	ErrFrontmatterTooLarge = errors.New("frontmatter too large")

	// ErrNotUTF8 marks a note file that is not valid UTF-8.
	ErrNotUTF8 = errors.New("note is not UTF-8 encoded")

	// ErrConflict marks an optimistic-concurrency checksum mismatch.
	ErrConflict = errors.New("conflict")
)
