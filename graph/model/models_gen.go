// Code generated by github.com/99designs/gqlgen, DO NOT EDIT.

package model

type Query struct {
}
