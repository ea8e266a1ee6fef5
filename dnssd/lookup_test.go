package dnssd

import (
	"testing"

	"github.com/arrowhead-f/go-configuration-core/internal/message"
)

func rr(typ uint16, data message.RData) message.RR {
	return message.RR{Type: typ, Data: data}
}

func TestChooseSRVMinimumPriority(t *testing.T) {
	answers := []message.RR{
		rr(message.TypeSRV, message.RDataSRV{Priority: 10, Weight: 0, Port: 1, Target: "low-prio."}),
		rr(message.TypeSRV, message.RDataSRV{Priority: 0, Weight: 0, Port: 2, Target: "winner."}),
	}
	got, ok := chooseSRV(answers, func() int { return 0 })
	if !ok || got.Target != "winner." {
		t.Fatalf("got %+v ok=%v, want target=winner.", got, ok)
	}
}

func TestChooseSRVWeightedSelection(t *testing.T) {
	answers := []message.RR{
		rr(message.TypeSRV, message.RDataSRV{Priority: 0, Weight: 10, Port: 1, Target: "a."}),
		rr(message.TypeSRV, message.RDataSRV{Priority: 0, Weight: 90, Port: 2, Target: "b."}),
	}
	// randByte=0 -> cutoff=0: running sum starts at 100, after subtracting
	// a's weight (10) running=90 > 0, after subtracting b's weight (90)
	// running=0 <= 0 -> b wins.
	got, ok := chooseSRV(answers, func() int { return 0 })
	if !ok || got.Target != "b." {
		t.Fatalf("got %+v, want target=b. (cutoff 0)", got)
	}

	// randByte=255 -> cutoff=100: running=100 after first subtraction step
	// hasn't happened yet; after subtracting a's weight running=90 <= 100
	// -> a wins immediately.
	got, ok = chooseSRV(answers, func() int { return 255 })
	if !ok || got.Target != "a." {
		t.Fatalf("got %+v, want target=a. (cutoff 100)", got)
	}
}

func TestChooseSRVNoZeroWeightDivideByZero(t *testing.T) {
	answers := []message.RR{
		rr(message.TypeSRV, message.RDataSRV{Priority: 0, Weight: 0, Port: 1, Target: "only."}),
	}
	got, ok := chooseSRV(answers, func() int { return 128 })
	if !ok || got.Target != "only." {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
}

func TestChooseSRVNoCandidates(t *testing.T) {
	_, ok := chooseSRV(nil, func() int { return 0 })
	if ok {
		t.Fatal("expected ok=false for empty answer set")
	}
}
