// The pkg/xattr module doesn't compile for openbsd or plan9.

//go:build openbsd || plan9

package isotree

import (
	"fmt"
	"strings"
)

func ReadXattr(n *Node, diskPath string, followSymlinks bool) error  { return nil }
func WriteXattr(n *Node, diskPath string, followSymlinks bool) error { return nil }
func ReadACL(n *Node, diskPath string, followSymlinks bool) error    { return nil }

func SetAttr(n *Node, name string, value []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if name == "--remove-all" && len(value) == 0 {
		for k := range n.ExtInfo {
			if !strings.HasPrefix(k, "isofs.") {
				delete(n.ExtInfo, k)
			}
		}
		return nil
	}
	if strings.HasPrefix(name, "isofs.") {
		return fmt.Errorf("isotree: attribute name %q is reserved", name)
	}
	if value == nil {
		delete(n.ExtInfo, "user."+name)
		return nil
	}
	n.ExtInfo["user."+name] = value
	return nil
}

func GetAttr(n *Node, name string) ([]byte, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.ExtInfo["user."+name]
	return v, ok
}
