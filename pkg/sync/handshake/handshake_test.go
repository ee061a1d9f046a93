package handshake_test

import (
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/aleph-committee/aleph-poset/pkg/network/tcp"
	"github.com/aleph-committee/aleph-poset/pkg/sync/handshake"
)

var _ = Describe("Greeting", func() {

	It("carries the sender's pid and sid to the receiver", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		addr := ln.Addr().String()
		ln.Close()

		log := zerolog.Nop()
		listener, err := tcp.NewListener(addr, log)
		Expect(err).NotTo(HaveOccurred())
		dialer := tcp.NewDialer([]string{addr}, log)

		var wg sync.WaitGroup
		wg.Add(2)

		var gotPid uint16
		var gotSid uint32
		var acceptErr error

		go func() {
			defer wg.Done()
			conn, err := listener.Listen(5 * time.Second)
			if err != nil {
				acceptErr = err
				return
			}
			defer conn.Close()
			gotPid, gotSid, acceptErr = handshake.AcceptGreeting(conn)
		}()

		go func() {
			defer wg.Done()
			time.Sleep(50 * time.Millisecond)
			conn, err := dialer.Dial(0)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()
			Expect(handshake.Greet(conn, 3, 7)).To(Succeed())
		}()

		wg.Wait()
		Expect(acceptErr).NotTo(HaveOccurred())
		Expect(gotPid).To(BeNumerically("==", 3))
		Expect(gotSid).To(BeNumerically("==", 7))
	})
})
