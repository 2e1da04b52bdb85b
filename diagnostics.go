package tokenfilter

import (
	"strconv"

	"github.com/xlab/treeprint"
)

// DumpContextTree renders the shadow context stack as a tree, one branch
// per open container frame and one leaf per token still awaiting replay,
// for debugging a stuck or misbehaving filter without stepping through
// NextToken in a debugger. Grounded on the pack's tree-rendering idiom
// for ad-hoc structural dumps (npillmayer-fp's printTree helper).
func (c *FilteringCursor) DumpContextTree() string {
	root := treeprint.New()
	root.SetValue(c.instanceID)

	node := root
	for i, fc := range c.stack {
		node = node.AddBranch(frameLabel(i, fc))
		if fc.pendingStart {
			node.AddNode("pending: " + fc.startToken.String())
		}
		if fc.needToHandleName {
			node.AddNode("pending: PropertyName(" + fc.currentName + ")")
		}
	}
	return root.String()
}

func frameLabel(depth int, fc *filterContext) string {
	kind := "root"
	switch fc.kind {
	case contextObject:
		kind = "object"
	case contextArray:
		kind = "array[" + strconv.Itoa(fc.currentIndex) + "]"
	}
	state := "tentative"
	if fc.startHandled {
		state = "live"
	}
	return "#" + strconv.Itoa(depth) + " " + kind + " (" + state + ")"
}
