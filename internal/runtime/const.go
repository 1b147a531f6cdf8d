package runtime

// TapeChunkSize is the growth granularity of a JITed or AOT-compiled run's
// tape, matching internal/tape.ChunkSize.
const TapeChunkSize = 8192
