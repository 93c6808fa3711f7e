// Package ads implements the 8-wide BVH acceleration structure: its
// construction, node layout, and ray/cone/ball traversal.
//
// Grounded on original_source/include/wt/ads/bvh8w/{bvh8w,bvh8w_node,
// bvh8w_constructor,common}.hpp and include/wt/ads/ads.hpp.
package ads

import (
	"github.com/sixy6e/wavetrace/simd"
)

// AABBsPerNode is the fan-out of one 8-wide node.
const AABBsPerNode = simd.Lanes

// Node is one 8-wide BVH node: eight child AABBs plus eight signed
// child pointers (0 = empty, >0 = interior-child index+1, <0 =
// leaf-node index negated+1), plus the contiguous triangle range
// covered by the whole subtree, used for subtree-level leaf harvesting
// during diffusive cone traversal.
type Node struct {
	Min, Max simd.Vec3

	// Child[i]: 0 empty, >0 interior child (index = Child[i]-1), <0
	// leaf (index = -Child[i]-1).
	Child [AABBsPerNode]int32

	TrisStart, TrisCount uint32
}

// IsPtrEmpty reports whether a child pointer slot is empty.
func IsPtrEmpty(p int32) bool { return p == 0 }

// IsPtrLeaf reports whether a child pointer slot refers to a leaf.
func IsPtrLeaf(p int32) bool { return p < 0 }

// IsPtrChild reports whether a child pointer slot refers to an interior
// node.
func IsPtrChild(p int32) bool { return p > 0 }

// LeafNodePtr decodes a leaf pointer into a leaf-array index.
func LeafNodePtr(p int32) int { return int(-p - 1) }

// ChildNodePtr decodes an interior-child pointer into a node-array
// index.
func ChildNodePtr(p int32) int { return int(p - 1) }

// encodeLeafPtr encodes a leaf-array index as a child pointer.
func encodeLeafPtr(idx int) int32 { return int32(-(idx + 1)) }

// encodeChildPtr encodes a node-array index as a child pointer.
func encodeChildPtr(idx int) int32 { return int32(idx + 1) }

// Leaf is (tris_ptr, count) into the global, leaf-contiguous triangle
// array.
type Leaf struct {
	TrisPtr, Count uint32
}

// RootIndex is the node index of the BVH root; 0 is reserved as the
// "empty" sentinel shared with child pointers, so the root is numbered
// 1.
const RootIndex = 1
