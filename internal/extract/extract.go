// Package extract turns raw tool diagnostics into structured error records.
// Extraction is pure text-to-structure transformation and never fails: when
// no known pattern matches, a single generic record carries the full raw
// output so no failed task is silently dropped.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

// eslintLine matches ESLint's unix-style output:
//
//	src/app.ts:10:5: error 'x' is assigned a value but never used
var eslintLine = regexp.MustCompile(`^(.+?):(\d+):(\d+):\s+(error|warning)\s+(.+)$`)

// tscLine matches the TypeScript compiler's output:
//
//	src/app.ts(3,1): error TS2322: Type 'string' is not assignable ...
var tscLine = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\):\s+(error|warning)\s+(TS\d+):\s+(.+)$`)

// Errors converts a failed TaskResult's diagnostic text into detailed error
// records. rawText is the text to parse (usually the result's Error field).
func Errors(taskName, rawText string, result types.TaskResult) []types.DetailedError {
	now := time.Now()

	var parsed []types.DetailedError
	switch taskName {
	case "lint":
		parsed = parseESLint(taskName, rawText, result, now)
	case "typecheck":
		parsed = parseTSC(taskName, rawText, result, now)
	}

	if len(parsed) > 0 {
		return parsed
	}
	return []types.DetailedError{generic(taskName, rawText, result, now)}
}

func parseESLint(taskName, raw string, result types.TaskResult, now time.Time) []types.DetailedError {
	var errs []types.DetailedError
	for _, line := range strings.Split(raw, "\n") {
		m := eslintLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		errs = append(errs, types.DetailedError{
			TaskName:   taskName,
			Kind:       types.KindLint,
			Severity:   types.Severity(m[4]),
			Message:    strings.TrimSpace(m[5]),
			Location:   &types.Location{File: m[1], Line: lineNo, Column: col},
			Timestamp:  now,
			DurationMs: result.DurationMs,
		})
	}
	return errs
}

func parseTSC(taskName, raw string, result types.TaskResult, now time.Time) []types.DetailedError {
	var errs []types.DetailedError
	for _, line := range strings.Split(raw, "\n") {
		m := tscLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		errs = append(errs, types.DetailedError{
			TaskName:   taskName,
			Kind:       types.KindTypecheck,
			Severity:   types.Severity(m[4]),
			Message:    m[5] + ": " + strings.TrimSpace(m[6]),
			Location:   &types.Location{File: m[1], Line: lineNo, Column: col},
			Timestamp:  now,
			DurationMs: result.DurationMs,
		})
	}
	return errs
}

// generic produces the single fallback record for unstructured output.
func generic(taskName, raw string, result types.TaskResult, now time.Time) types.DetailedError {
	message := strings.TrimSpace(raw)
	if message == "" {
		message = taskName + " failed with no diagnostic output"
	}
	return types.DetailedError{
		TaskName:   taskName,
		Kind:       kindForTask(taskName),
		Severity:   types.SeverityError,
		Message:    message,
		Timestamp:  now,
		DurationMs: result.DurationMs,
		RawOutput:  raw,
	}
}

func kindForTask(taskName string) types.ErrorKind {
	switch taskName {
	case "lint":
		return types.KindLint
	case "typecheck":
		return types.KindTypecheck
	case "build":
		return types.KindBuild
	case "test":
		return types.KindTest
	case "website":
		return types.KindWebsite
	}
	return types.KindUnknown
}
