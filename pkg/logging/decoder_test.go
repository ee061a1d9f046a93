package logging_test

import (
	"bytes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/aleph-committee/aleph-poset/pkg/logging"
)

var _ = Describe("Decoder", func() {

	var (
		buf     bytes.Buffer
		decoder interface {
			Write([]byte) (int, error)
		}
	)

	BeforeEach(func() {
		buf.Reset()
		decoder = logging.NewDecoder(&buf)
	})

	It("decodes a regular log line into a human readable summary", func() {
		line := []byte(`{"T":"12:00:00","L":"1","S":2,"E":"U","H":5}`)
		n, err := decoder.Write(line)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(len(line)))

		out := buf.String()
		Expect(out).To(ContainSubstring("SYNC"))
		Expect(out).To(ContainSubstring("new regular unit created"))
		Expect(out).To(ContainSubstring("height"))
	})

	It("special-cases the genesis event", func() {
		line := []byte(`{"E":"genesis","genesis":"1700000000"}`)
		_, err := decoder.Write(line)
		Expect(err).NotTo(HaveOccurred())

		Expect(buf.String()).To(ContainSubstring("Beginning of time at"))
	})

	It("falls back to the raw key for an unrecognized field", func() {
		line := []byte(`{"mystery":"value"}`)
		_, err := decoder.Write(line)
		Expect(err).NotTo(HaveOccurred())

		Expect(buf.String()).To(ContainSubstring("mystery"))
		Expect(buf.String()).To(ContainSubstring("value"))
	})

	It("returns an error for malformed JSON without writing anything", func() {
		n, err := decoder.Write([]byte("not json"))
		Expect(err).To(HaveOccurred())
		Expect(n).To(Equal(0))
		Expect(buf.Len()).To(Equal(0))
	})
})
