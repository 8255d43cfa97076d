// Package trace records spans of the assembler pipeline: driver runs,
// passes (parse, allocate, lower, verify, disassemble), single members and,
// at the debug level, single instructions.
//
// Enable tracing from the command line:
//
//	jasm assemble --trace=- --trace-level=phase Demo.jasm
//
// Tracers travel through the pipeline in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, member := trace.StartMember(ctx, "method", "sum", "(II)I")
//	defer member.End("")
//	ctx, pass := trace.StartPass(ctx, trace.PassVerify)
//	defer pass.End("")
//
// At the debug level the verifier adds one instruction event per worklist
// step, carrying the incoming frame.
//
// A StreamTracer writes each event as it happens (text or NDJSON), a
// RingTracer keeps the last N events for a dump after a failure, and a
// MultiTracer feeds both.
package trace
