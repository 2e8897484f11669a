package gbm

// node is one node of a regression tree. Internal nodes carry a split,
// leaves carry the output value (already scaled by the learning rate).
type node struct {
	SplitFeature int
	Threshold    float64
	LeftChild    int
	RightChild   int
	LeafValue    float64
	IsLeaf       bool
	Gain         float64
}

// tree is a single regression tree addressed by node index, root at 0.
type tree struct {
	Nodes []node
}

// predictRow walks the tree for one row of features.
func (t *tree) predictRow(row []float64) float64 {
	idx := 0
	for {
		n := t.Nodes[idx]
		if n.IsLeaf {
			return n.LeafValue
		}
		if row[n.SplitFeature] <= n.Threshold {
			idx = n.LeftChild
		} else {
			idx = n.RightChild
		}
	}
}

// numLeaves counts the leaves of the tree.
func (t *tree) numLeaves() int {
	count := 0
	for _, n := range t.Nodes {
		if n.IsLeaf {
			count++
		}
	}
	return count
}
