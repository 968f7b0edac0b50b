package upstream_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/gemini-gateway/internal/envelope"
	"github.com/angeloszaimis/gemini-gateway/internal/upstream"
)

var _ = Describe("Decode", func() {
	DescribeTable("maps upstream bodies onto a kind",
		func(body string, kind upstream.Kind, text string) {
			resp, err := upstream.Decode([]byte(body))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp).To(Equal(upstream.Response{Kind: kind, Text: text}))
		},
		Entry("success", `{"status":"true","result":"Hi there"}`, upstream.KindSuccess, "Hi there"),
		Entry("failure", `{"status":"false","message":"quota exceeded"}`, upstream.KindFailure, "quota exceeded"),
		Entry("boolean status is not the string true", `{"status":true,"result":"x","message":"m"}`, upstream.KindFailure, "m"),
		Entry("missing status", `{"message":"m"}`, upstream.KindFailure, "m"),
		Entry("object result", `{"status":"true","result":{"a": 1}}`, upstream.KindSuccess, `{"a":1}`),
		Entry("numeric message", `{"status":"false","message":42}`, upstream.KindFailure, "42"),
		Entry("success without result", `{"status":"true","message":"m"}`, upstream.KindUnexpected, ""),
		Entry("failure without message", `{"status":"false","result":"r"}`, upstream.KindUnexpected, ""),
		Entry("null result", `{"status":"true","result":null}`, upstream.KindUnexpected, ""),
		Entry("array body", `[1,2,3]`, upstream.KindUnexpected, ""),
	)

	DescribeTable("fails on bodies that are not JSON",
		func(body string) {
			_, err := upstream.Decode([]byte(body))
			Expect(err).To(HaveOccurred())
		},
		Entry("empty", ``),
		Entry("html", `<html>502 Bad Gateway</html>`),
		Entry("truncated", `{"status":"true","res`),
	)
})

var _ = Describe("Format", func() {
	It("should pass a success result through", func() {
		Expect(upstream.Format(upstream.Response{Kind: upstream.KindSuccess, Text: "X"}, nil)).
			To(Equal(envelope.Envelope{Code: "200", Reply: "X"}))
	})

	It("should keep code 200 for an upstream failure", func() {
		Expect(upstream.Format(upstream.Response{Kind: upstream.KindFailure, Text: "Y"}, nil)).
			To(Equal(envelope.Envelope{Code: "200", Reply: "Y"}))
	})

	It("should return an empty reply for unexpected shapes", func() {
		Expect(upstream.Format(upstream.Response{Kind: upstream.KindUnexpected}, nil)).
			To(Equal(envelope.Envelope{Code: "200", Reply: ""}))
	})

	It("should turn errors into the request error envelope", func() {
		Expect(upstream.Format(upstream.Response{Kind: upstream.KindSuccess, Text: "ignored"}, upstream.ErrBodyTooLarge)).
			To(Equal(envelope.Envelope{Code: "500", Reply: "Request error occurred"}))
	})
})
