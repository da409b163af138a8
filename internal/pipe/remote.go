package pipe

import (
	"fmt"
	"os"
	"os/user"

	gossh "golang.org/x/crypto/ssh"
	"golang.org/x/sys/unix"

	"github.com/tved/tved/internal/config"
	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
	"github.com/tved/tved/internal/ssh"
)

// ExecRemote runs a command on a remote host over SSH and wires its
// stdout into the buffer's pipe state, so the normal per-tick
// reassembly applies. The host may carry a user prefix (user@host).
func ExecRemote(b *buffer.Buffer, host, command string, opts int) error {
	if b.Pipe.Running() {
		logger.Tracemsg("running background process!")
		return errors.ErrPipeRunning
	}

	userName := ""
	for i := 0; i < len(host); i++ {
		if host[i] == '@' {
			userName = host[:i]
			host = host[i+1:]
			break
		}
	}
	if userName == "" {
		if u, err := user.Current(); err == nil {
			userName = u.Username
		}
	}

	port := 22
	keyPath := ""
	trustAllHosts := false
	if config.Common != nil {
		if config.Common.SSHPort > 0 {
			port = config.Common.SSHPort
		}
		keyPath = config.Common.SSHPrivateKeyFilePath
		trustAllHosts = config.Common.SSHTrustAllHosts
	}

	hostKeyCallback, err := ssh.NewHostKeyCallback(trustAllHosts)
	if err != nil {
		logger.Tracemsg("cannot verify host keys: %s", err.Error())
		return errors.Wrap(errors.ErrChildSpawn, err.Error())
	}

	clientConfig := &gossh.ClientConfig{
		User:            userName,
		Auth:            ssh.AuthMethods(keyPath),
		HostKeyCallback: hostKeyCallback,
	}

	client, err := gossh.Dial("tcp", fmt.Sprintf("%s:%d", host, port), clientConfig)
	if err != nil {
		logger.Tracemsg("cannot connect %s: %s", host, err.Error())
		return errors.Wrap(errors.ErrChildSpawn, err.Error())
	}

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		return errors.Wrap(errors.ErrChildSpawn, err.Error())
	}

	// Bridge the remote stdout through a local pipe so the poll loop
	// sees an ordinary non-blocking descriptor.
	outR, outW, err := os.Pipe()
	if err != nil {
		session.Close()
		client.Close()
		return errors.Wrap(errors.ErrChildSpawn, err.Error())
	}
	session.Stdout = outW
	if opts&OptRedirErr != 0 {
		session.Stderr = outW
	}

	if err := session.Start(command); err != nil {
		outR.Close()
		outW.Close()
		session.Close()
		client.Close()
		logger.Tracemsg("remote command failed: %s", err.Error())
		return errors.Wrap(errors.ErrChildSpawn, err.Error())
	}

	go func() {
		session.Wait()
		outW.Close()
	}()

	b.Pipe.Output = outR
	b.Pipe.Opts = opts
	b.Pipe.OutFd = int(outR.Fd())
	b.Pipe.CloseRemote = func() error {
		session.Close()
		return client.Close()
	}
	unix.SetNonblock(b.Pipe.OutFd, true)

	logger.Debug("remote exec", host, command)
	return nil
}
