package website

import (
	"strings"
	"testing"

	"github.com/go-rod/rod/lib/proto"
)

func TestReportSuccess(t *testing.T) {
	clean := &Report{URL: "http://localhost:3000", Warnings: []string{"slow request"}}
	if !clean.Success() {
		t.Error("warnings alone must not fail the check")
	}

	broken := &Report{URL: "http://localhost:3000", Errors: []string{"console error: boom"}}
	if broken.Success() {
		t.Error("any hard error fails the check")
	}
}

func TestReportSummary(t *testing.T) {
	r := &Report{
		URL:          "http://localhost:3000",
		Errors:       []string{"console error: boom"},
		Warnings:     []string{"2 image(s) missing alt text"},
		BrokenImages: 1,
		MissingAlt:   2,
	}

	out := r.Summary()
	for _, want := range []string{
		"Checked http://localhost:3000: 1 errors, 1 warnings",
		"error: console error: boom",
		"warning: 2 image(s) missing alt text",
		"1 broken image(s)",
		"2 image(s) missing alt text",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestCollector_ConsoleEvents(t *testing.T) {
	report := &Report{}
	col := newCollector(report)

	// Only console.error counts; log and warn are ignored.
	col.onConsole(&proto.RuntimeConsoleAPICalled{Type: proto.RuntimeConsoleAPICalledTypeLog})
	col.onConsole(&proto.RuntimeConsoleAPICalled{Type: proto.RuntimeConsoleAPICalledTypeWarning})
	col.onConsole(&proto.RuntimeConsoleAPICalled{
		Type: proto.RuntimeConsoleAPICalledTypeError,
		Args: []*proto.RuntimeRemoteObject{{Description: "TypeError: x is undefined"}},
	})

	if len(report.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(report.Errors))
	}
	if !strings.Contains(report.Errors[0], "TypeError: x is undefined") {
		t.Errorf("error = %q", report.Errors[0])
	}
}

func TestCollector_Exception(t *testing.T) {
	report := &Report{}
	col := newCollector(report)

	col.onException(&proto.RuntimeExceptionThrown{
		ExceptionDetails: &proto.RuntimeExceptionDetails{
			Text: "Uncaught",
			Exception: &proto.RuntimeRemoteObject{
				Description: "Error: render failed",
			},
		},
	})

	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0], "Error: render failed") {
		t.Errorf("errors = %v", report.Errors)
	}
}

func TestCollector_FailedResponse(t *testing.T) {
	report := &Report{}
	col := newCollector(report)

	col.onResponse(&proto.NetworkResponseReceived{
		Response: &proto.NetworkResponse{URL: "http://localhost:3000/api/ok", Status: 200},
	})
	col.onResponse(&proto.NetworkResponseReceived{
		Response: &proto.NetworkResponse{URL: "http://localhost:3000/api/data", Status: 500},
	})

	if len(report.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(report.Errors))
	}
	if !strings.Contains(report.Errors[0], "/api/data") || !strings.Contains(report.Errors[0], "500") {
		t.Errorf("error = %q", report.Errors[0])
	}
}

func TestCollector_LoadingFailedNamesRequest(t *testing.T) {
	report := &Report{}
	col := newCollector(report)

	col.onRequest(&proto.NetworkRequestWillBeSent{
		RequestID: "req-1",
		Request:   &proto.NetworkRequest{URL: "http://localhost:3000/app.js"},
	})
	col.onLoadingFailed(&proto.NetworkLoadingFailed{
		RequestID: "req-1",
		ErrorText: "net::ERR_CONNECTION_REFUSED",
	})

	if len(report.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(report.Errors))
	}
	if !strings.Contains(report.Errors[0], "app.js") {
		t.Errorf("failure should name the request URL: %q", report.Errors[0])
	}
}

func TestCollector_CanceledLoadIgnored(t *testing.T) {
	report := &Report{}
	col := newCollector(report)

	col.onLoadingFailed(&proto.NetworkLoadingFailed{RequestID: "req-1", Canceled: true})

	if len(report.Errors) != 0 {
		t.Errorf("canceled requests are not failures: %v", report.Errors)
	}
}

func TestStringifyConsoleArgs(t *testing.T) {
	got := stringifyConsoleArgs([]*proto.RuntimeRemoteObject{
		nil,
		{Description: "Error: boom"},
	})
	if got != "Error: boom" {
		t.Errorf("stringifyConsoleArgs = %q", got)
	}
}
