// Package upload implements the chunked multipart upload engine.
//
// Files are sliced into fixed-size parts and sent strictly one at a time in
// ascending part order; part n+1 is not started until part n's response is
// in. This trades throughput for predictable progress accounting. Overall
// progress is derived from transport byte counts and clamped below 100 until
// the finalize call succeeds.
package upload
