// Package errors provides the classified error primitives used across sitegen.
//
// Domain packages (content, macro, paths, i18n, render) return their own typed
// errors. The build and CLI layers fold those into a ClassifiedError so the
// command line can pick an exit code and a user message from one place.
//
// Key features:
//   - ErrorCategory: broad classification (config, content, macro, slug, render, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - ClassifiedError: structured error with category, severity and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing formatting
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryContent, "invalid front matter").
//		WithContext("path", "content/posts/hello.md").
//		WithContext("field", "date").
//		Build()
package errors
