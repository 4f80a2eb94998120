package ntmtrace_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/ntmtrace"
	"github.com/aretw0/ntmtrace/pkg/adapters/memory"
	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/report"
)

// ExampleNew_memory traces a machine defined in Go, without touching the
// filesystem.
func ExampleNew_memory() {
	loader, err := memory.NewFromMachines(domain.Machine{
		Name:          "a_star",
		States:        []string{"q0", "qAccept", "qReject"},
		InputAlphabet: []domain.Symbol{"a"},
		TapeAlphabet:  []domain.Symbol{"a", "_"},
		Blank:         "_",
		Start:         "q0",
		Accept:        "qAccept",
		Reject:        "qReject",
		Transitions: []domain.Transition{
			{From: "q0", Read: "a", To: "q0", Write: "a", Move: domain.MoveRight},
			{From: "q0", Read: "_", To: "qAccept", Write: "_", Move: domain.MoveStay},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	tracer, err := ntmtrace.New("", ntmtrace.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	rep, err := tracer.Trace(ctx, "a_star", "a", 10)
	if err != nil {
		log.Fatal(err)
	}

	collector := &report.Collector{}
	if err := tracer.Emit(ctx, rep, collector); err != nil {
		log.Fatal(err)
	}
	for _, rec := range collector.Records {
		if rec.Kind == domain.RecordStep {
			fmt.Println(rec.Step, rec.State)
		} else {
			fmt.Println(rec.Text)
		}
	}

	// Output:
	// Tracing NTM: a_star on input 'a'
	// String accepted in 2 steps.
	//
	// Trace path:
	// 0 q0
	// 1 q0
	// 2 qAccept
}

// ExampleTracer_Trace reads machines from a directory.
func ExampleTracer_Trace() {
	tracer, err := ntmtrace.New("examples/machines")
	if err != nil {
		log.Fatal(err)
	}

	rep, err := tracer.Trace(context.Background(), "contains_ab", "bab", 20)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(rep.Result.Verdict, rep.Result.Depth)

	rep, err = tracer.Trace(context.Background(), "loop", "a", 5)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(report.Summary(&rep.Result))

	// Output:
	// accepted 3
	// Execution stopped after 5 steps.
}
