// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffzip

import (
	"container/heap"
	"errors"
)

// maxCodeLen is the longest code a bitcode can hold.
const maxCodeLen = 64

var errCodeTooLong = errors.New("code longer than 64 bits")

// A node is a node of a Huffman tree.
// Leaves hold a symbol; internal nodes hold only the sum of their children's counts.
type node struct {
	count       uint64
	order       int // tie-break among equal counts; lower comes first
	sym         byte
	leaf        bool
	left, right *node
}

// nodeHeap is a min-heap of nodes ordered by (count, order).
type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].count != h[j].count {
		return h[i].count < h[j].count
	}
	return h[i].order < h[j].order
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*node)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}

// buildTree builds the Huffman tree for t, which must not be empty.
//
// The two lowest-count nodes are merged repeatedly, the first becoming the
// left child. Ties are broken as if the working list were stably sorted by
// count before each merge and the merged node put at its front: leaf i has
// order i, and the k'th merged node has order -(k+1), so it precedes every
// leaf and every earlier merged node with the same count.
// Decoders depend on this to rebuild the encoder's tree from the same table.
func buildTree(t Table) *node {
	h := make(nodeHeap, len(t))
	for i, s := range t {
		h[i] = &node{count: s.Count, order: i, sym: s.Byte, leaf: true}
	}
	heap.Init(&h)
	for k := 0; h.Len() > 1; k++ {
		left := heap.Pop(&h).(*node)
		right := heap.Pop(&h).(*node)
		heap.Push(&h, &node{
			count: left.count + right.count,
			order: -(k + 1),
			left:  left,
			right: right,
		})
	}
	return h[0]
}

// assignCodes walks the tree rooted at n, appending 0 for each left edge and
// 1 for each right edge, and stores each leaf's path in codes.
// A root that is itself a leaf gets the code "0".
func assignCodes(n *node, path bitcode, codes *[256]bitcode) error {
	if n.leaf {
		if path.len == 0 {
			path = bitcode{val: 0, len: 1}
		}
		codes[n.sym] = path
		return nil
	}
	if path.len == maxCodeLen {
		return errCodeTooLong
	}
	if err := assignCodes(n.left, bitcode{val: path.val << 1, len: path.len + 1}, codes); err != nil {
		return err
	}
	return assignCodes(n.right, bitcode{val: path.val<<1 | 1, len: path.len + 1}, codes)
}
