// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser contains the common serialization and
// deserialization helpers of the resource packages.
package serdser

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/momeni/vehicle-access/pkg/core/cerr"
)

// Bind deserializes the c request into req using the b binding and
// validates it. Validation errors are reported per field with a 400
// status code. It returns true if req may be used by the caller and
// false if a response is already written.
func Bind(c *gin.Context, req any, b binding.Binding) bool {
	return check(c, c.ShouldBindWith(req, b))
}

// BindURI is like Bind, but deserializes the path params into req.
func BindURI(c *gin.Context, req any) bool {
	return check(c, c.ShouldBindUri(req))
}

func check(c *gin.Context, err error) bool {
	switch err := err.(type) {
	case *validator.InvalidValidationError:
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": err.Error(),
		})
	case validator.ValidationErrors:
		var nameToErrs map[string][]string
		for _, ferr := range err {
			AddErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, nameToErrs)
	default:
		if err == nil {
			return true
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": err.Error(),
		})
	}
	return false
}

// AddErr appends msgs to the errors of the name field, allocating
// the errs map if necessary.
func AddErr(errs *map[string][]string, name string, msgs ...string) {
	if (*errs) == nil {
		*errs = make(map[string][]string)
	}
	(*errs)[name] = append((*errs)[name], msgs...)
}

// Assert adds msgs to the errors of the name field if ok is false.
// It returns the ok value, so assertions may be chained.
func Assert(errs *map[string][]string, ok bool, name string, msgs ...string) bool {
	if !ok {
		AddErr(errs, name, msgs...)
	}
	return ok
}

// SerErr writes err as a {"detail": ...} JSON object. The status code
// is taken from a wrapped cerr.Error, or is 500 otherwise.
func SerErr(c *gin.Context, err error) {
	var ce *cerr.Error
	if errors.As(err, &ce) {
		c.JSON(ce.HTTPStatusCode, gin.H{
			"detail": ce.Err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"detail": err.Error(),
	})
}
