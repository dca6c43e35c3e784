// Package buffer provides the interleaved 16-bit PCM container exchanged
// between decoders, the stretch engine and encoders, plus a pool for reusing
// chunk buffers in streaming loops.
//
// Samples are stored frame by frame: for a stereo buffer Data holds
// L0 R0 L1 R1 ... A frame is one sample for every channel.
package buffer
