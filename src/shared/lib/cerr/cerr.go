// Package cerr attaches structured fields to errors so that the place
// which finally logs an error can report where it came from.
package cerr

import (
	"github.com/apex/log"
	"github.com/cockroachdb/errors"
)

type F = map[string]any

type Context struct {
	fields F
}

func Field(key string, value any) Context {
	return Context{}.Field(key, value)
}

func Fields(fields F) Context {
	return Context{}.Fields(fields)
}

func Wrap(err error) Wrapper {
	return Context{}.Wrap(err)
}

func Error(msg string) error {
	return Context{}.error(msg)
}

func (c Context) Field(key string, value any) Context {
	return c.Fields(F{key: value})
}

func (c Context) Fields(fields F) Context {
	merged := make(F, len(c.fields)+len(fields))
	for k, v := range c.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return Context{fields: merged}
}

func (c Context) Wrap(err error) Wrapper {
	return Wrapper{ctx: c, err: err}
}

func (c Context) Error(msg string) error {
	return c.error(msg)
}

func (c Context) error(msg string) error {
	return c.attach(errors.NewWithDepth(2, msg))
}

func (c Context) attach(err error) error {
	if len(c.fields) == 0 {
		return err
	}

	return &fieldsError{cause: err, fields: c.fields}
}

type Wrapper struct {
	ctx Context
	err error
}

func (w Wrapper) Error(msg string) error {
	return w.ctx.attach(errors.WrapWithDepth(1, w.err, msg))
}

type fieldsError struct {
	cause  error
	fields F
}

func (f *fieldsError) Error() string { return f.cause.Error() }
func (f *fieldsError) Cause() error  { return f.cause }
func (f *fieldsError) Unwrap() error { return f.cause }

// CollectFields gathers the fields of every layer of the error chain,
// outer layers win on key collisions
func CollectFields(err error) F {
	collected := F{}
	for current := err; current != nil; current = errors.UnwrapOnce(current) {
		fieldsErr, ok := current.(*fieldsError)
		if !ok {
			continue
		}

		for k, v := range fieldsErr.fields {
			if _, exists := collected[k]; !exists {
				collected[k] = v
			}
		}
	}

	return collected
}

func Log(err error) {
	if err == nil {
		return
	}

	log.WithFields(log.Fields(CollectFields(err))).
		WithError(err).
		Error("Error occurred")
}
