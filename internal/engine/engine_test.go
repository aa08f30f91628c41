package engine

import (
	"reflect"
	"testing"

	"splicer/internal/pipeline"
)

func TestFromStepCopiesParams(t *testing.T) {
	steps, err := pipeline.BuildCompress(20, pipeline.TranscodeSpec{Quality: pipeline.QualityLow, Resolution: pipeline.Resolution720p})
	if err != nil {
		t.Fatalf("BuildCompress returned error: %v", err)
	}
	op := FromStep(steps[0])
	want := Operation{
		Kind:             pipeline.StepTranscode,
		Inputs:           []string{pipeline.BaseName},
		Output:           pipeline.CompressedName,
		Quality:          32,
		Resolution:       "1280x720",
		ExpectedDuration: 20,
	}
	if !reflect.DeepEqual(op, want) {
		t.Fatalf("FromStep() = %+v, want %+v", op, want)
	}
	op.Inputs[0] = "mutated"
	if steps[0].Inputs[0] != pipeline.BaseName {
		t.Fatal("expected operation inputs to be a copy")
	}
}

func TestEventConstructors(t *testing.T) {
	if ev := Progress(0.5, 0); ev.Type != EventProgress || ev.Fraction != 0.5 {
		t.Fatalf("unexpected progress event %+v", ev)
	}
	if ev := Log("frame=1"); ev.Type != EventLog || ev.Line != "frame=1" {
		t.Fatalf("unexpected log event %+v", ev)
	}
	if ev := Done(nil); ev.Type != EventDone || ev.Err != nil {
		t.Fatalf("unexpected done event %+v", ev)
	}
}
