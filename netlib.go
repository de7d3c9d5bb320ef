//go:build cblas

package main

// cblas タグを指定した場合は、行列演算に netlib (CBLAS) を用いる。
//   go build -tags cblas

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/netlib/blas/netlib"
)

func init() {
	blas64.Use(netlib.Implementation{})
}
