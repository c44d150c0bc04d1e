package typecache

import "fmt"

// TypeNotFoundError means no loader domain in the handle's ancestry could
// produce bytes, a loaded definition, or a reflection fallback for a name.
type TypeNotFoundError struct {
	Name string
}

func (e *TypeNotFoundError) Error() string {
	return fmt.Sprintf("type not found: %s", e.Name)
}

// MalformedClassError means bytes were obtained for a name but the bytecode
// reader could not parse them as a well-formed class file.
type MalformedClassError struct {
	Name string
	Err  error
}

func (e *MalformedClassError) Error() string {
	return fmt.Sprintf("malformed class %s: %v", e.Name, e.Err)
}

func (e *MalformedClassError) Unwrap() error { return e.Err }

// ResourceIOError means the domain's resource lookup itself failed (a
// read error, not merely an absent resource).
type ResourceIOError struct {
	Name string
	Err  error
}

func (e *ResourceIOError) Error() string {
	return fmt.Sprintf("resource I/O error for %s: %v", e.Name, e.Err)
}

func (e *ResourceIOError) Unwrap() error { return e.Err }

// LoaderBypassError is not fatal: it records that the resolver fell back to
// runtime reflection, or to a forced non-initializing load followed by
// reflection, because the effective domain could not supply raw bytes.
// The resolver logs it at warning level and returns the synthesized
// *ParsedType with a nil error; it is reported for observability only.
type LoaderBypassError struct {
	Name   string
	Reason string
}

func (e *LoaderBypassError) Error() string {
	return fmt.Sprintf("loader bypass for %s: %s", e.Name, e.Reason)
}
