//go:build !unix

package udp

func isTransient(error) bool {
	return false
}
