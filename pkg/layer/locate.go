package layer

import (
	"github.com/matzehuels/psdlayout/pkg/errors"
)

// GroupNames returns the name of every group under root in traversal order.
// Duplicates are kept. The result is empty, not nil, when root has no groups.
func GroupNames(root *Node) []string {
	names := []string{}
	root.Walk(func(n *Node) bool {
		if n.IsGroup() {
			names = append(names, n.Name)
		}
		return true
	})
	return names
}

// FindGroup returns the first group under root whose name equals name.
// Matching is exact and case-sensitive. When several groups share the name
// the first one in traversal order wins.
//
// When no group matches, FindGroup returns a GROUP_NOT_FOUND error wrapping
// an [errors.GroupNotFoundError] that lists every group found.
func FindGroup(root *Node, name string) (*Node, error) {
	var match *Node
	root.Walk(func(n *Node) bool {
		if n.IsGroup() && n.Name == name {
			match = n
			return false
		}
		return true
	})
	if match != nil {
		return match, nil
	}
	return nil, errors.Wrap(errors.ErrCodeGroupNotFound,
		&errors.GroupNotFoundError{Name: name, Groups: GroupNames(root)},
		"locate group")
}
