package fleet

import "errors"

var (
	ErrSSHKeyCheckFailed = errors.New("SSH key check failed")
	ErrRouteFailed       = errors.New("route configuration failed")
	ErrTunnelFailed      = errors.New("sshuttle start failed")
	ErrDisconnectFailed  = errors.New("failed to stop sshuttle")
	ErrTokenFailed       = errors.New("failed to fetch OCM token")
	ErrKubeconfigMissing = errors.New("kubeconfig not found")
	ErrUnknownTarget     = errors.New("unknown open target")
	ErrRenderFailed      = errors.New("failed to render command")
)
