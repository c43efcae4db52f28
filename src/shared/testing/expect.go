package testing

import (
	"github.com/onsi/gomega"
)

func ExpectSuccess[T any](t T, err error) T {
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())
	return t
}

func ExpectType[T any](thing interface{}) T {
	gomega.ExpectWithOffset(1, thing).NotTo(gomega.BeNil())
	realThing, ok := thing.(T)
	gomega.ExpectWithOffset(1, ok).To(gomega.BeTrue())
	return realThing
}
