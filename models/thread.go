package models

// Thread is a comment together with its nested replies.
type Thread struct {
	Comment
	Replies []*Thread
}

// BuildThreads arranges a flat comment list into reply trees. Input order is
// kept among siblings. A comment whose parent is absent from the list (deleted,
// never existed, negative, or on another post) is placed at the top level, as
// is any comment that sits on a parent cycle.
func BuildThreads(comments []Comment) []*Thread {
	nodes := make(map[uint]*Thread, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = &Thread{Comment: comments[i]}
	}

	parents := make(map[uint]*Thread, len(comments))
	for id, node := range nodes {
		if parent := lookupParent(node, nodes); parent != nil {
			parents[id] = parent
		}
	}
	cyclic := cycleMembers(parents)

	roots := make([]*Thread, 0, len(comments))
	for i := range comments {
		node := nodes[comments[i].ID]
		parent, ok := parents[node.ID]
		if !ok || cyclic[node.ID] {
			roots = append(roots, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}
	return roots
}

func lookupParent(node *Thread, nodes map[uint]*Thread) *Thread {
	if node.ParentID == nil || *node.ParentID < 0 {
		return nil
	}
	return nodes[uint(*node.ParentID)]
}

// cycleMembers returns the ids that lie on a parent cycle. Every id is walked
// at most once.
func cycleMembers(parents map[uint]*Thread) map[uint]bool {
	const (
		unvisited = iota
		walking
		done
	)
	state := make(map[uint]int, len(parents))
	cyclic := make(map[uint]bool)

	for start := range parents {
		if state[start] != unvisited {
			continue
		}
		var path []uint
		for id := start; ; {
			if state[id] == walking {
				// the walk came back to itself: everything from id onwards loops
				for j := len(path) - 1; j >= 0; j-- {
					cyclic[path[j]] = true
					if path[j] == id {
						break
					}
				}
				break
			}
			if state[id] == done {
				break
			}
			state[id] = walking
			path = append(path, id)
			parent, ok := parents[id]
			if !ok {
				break
			}
			id = parent.ID
		}
		for _, id := range path {
			state[id] = done
		}
	}
	return cyclic
}
