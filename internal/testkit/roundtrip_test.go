package testkit

import (
	"strings"
	"testing"

	"jasm/internal/asm"
)

func TestCheckRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"arith", "DEFINE static add(I a, I b)I\nILOAD a\nILOAD b\nIADD\nIRETURN"},
		{"loop", `DEFINE public static sum(I n)I
ICONST_0
ISTORE acc
LOOP:
ILOAD n
IFLE END
IINC acc 1
IINC n -1
GOTO LOOP
END:
ILOAD acc
IRETURN`},
		{"field", "DEFINE public static final J MAX\nVALUE 5L"},
		{"alias-like string", `DEFINE static m()Ljava/lang/String;
LDC "\u0024{x} costs $5"
ARETURN`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckRoundTrip(tt.text, asm.Options{Verify: true}); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestCheckRoundTripRejectsBadListing(t *testing.T) {
	err := CheckRoundTrip("DEFINE static m()V\nGOTO nowhere", asm.Options{})
	if err == nil || !strings.Contains(err.Error(), "does not assemble") {
		t.Fatalf("unexpected error: %v", err)
	}
}
