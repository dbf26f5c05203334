package concurrent

// SolvePairParam is one ordered (source, target) routing job inside a
// distance matrix build.
type SolvePairParam struct {
	PairID    int
	FromIdx   int
	ToIdx     int
	SrcNodeID int32
	DstNodeID int32
}

func NewSolvePairParam(pairID, fromIdx, toIdx int, srcNodeID, dstNodeID int32) SolvePairParam {
	return SolvePairParam{
		PairID:    pairID,
		FromIdx:   fromIdx,
		ToIdx:     toIdx,
		SrcNodeID: srcNodeID,
		DstNodeID: dstNodeID,
	}
}

type JobFunc[T any, G any] func(job T) G
