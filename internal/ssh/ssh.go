// Package ssh provides the auth methods for the remote pipe.
package ssh

import (
	"net"
	"os"

	gossh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/tved/tved/internal/io/logger"
)

// NewHostKeyCallback returns the host key verification callback: the
// user's known_hosts file by default, or accept-all when the explicit
// trustAllHosts opt-in is set.
func NewHostKeyCallback(trustAllHosts bool) (gossh.HostKeyCallback, error) {
	if trustAllHosts {
		logger.Warn("Trusting all unknown host keys")
		return gossh.InsecureIgnoreHostKey(), nil
	}
	knownHostsPath := os.Getenv("HOME") + "/.ssh/known_hosts"
	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}
	return callback, nil
}

// Agent used for SSH auth.
func Agent() (gossh.AuthMethod, error) {
	sshAgent, err := net.Dial("unix", os.Getenv("SSH_AUTH_SOCK"))
	if err != nil {
		return nil, err
	}
	agentClient := agent.NewClient(sshAgent)
	return gossh.PublicKeysCallback(agentClient.Signers), nil
}

// KeyFile returns the key as a SSH auth method.
func KeyFile(keyFile string) (gossh.AuthMethod, error) {
	buffer, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, err
	}
	key, err := gossh.ParsePrivateKey(buffer)
	if err != nil {
		return nil, err
	}
	return gossh.PublicKeys(key), nil
}

// AuthMethods collects all usable auth methods on the client side: a
// configured key file first, the default identities and the agent as
// fallbacks.
func AuthMethods(configuredKeyPath string) []gossh.AuthMethod {
	var methods []gossh.AuthMethod

	if configuredKeyPath != "" {
		if method, err := KeyFile(configuredKeyPath); err == nil {
			methods = append(methods, method)
			logger.Debug("ssh auth", "added key", configuredKeyPath)
		}
	}

	home := os.Getenv("HOME")
	for _, name := range []string{"/.ssh/id_rsa", "/.ssh/id_ed25519"} {
		if method, err := KeyFile(home + name); err == nil {
			methods = append(methods, method)
			logger.Debug("ssh auth", "added key", home+name)
		}
	}

	if method, err := Agent(); err == nil {
		methods = append(methods, method)
		logger.Debug("ssh auth", "added agent")
	}

	return methods
}
