// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/absmach/fieldsim/pkg/errors"
	"github.com/cenkalti/backoff/v4"
)

const maxLoginRetries = 4

var errLogin = errors.New("failed to log in to the backend")

var loginBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithMaxRetries(b, maxLoginRetries)
}

// authenticate logs in, retrying only when the backend could not be reached.
// A response from the backend, rejections included, is final.
func authenticate(ctx context.Context) error {
	op := func() error {
		_, err := sdk.CreateToken(ctx, login)
		switch {
		case err == nil:
			return nil
		case err.StatusCode() == 0:
			return err
		default:
			return backoff.Permanent(err)
		}
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn(fmt.Sprintf("Backend unreachable, retrying login in %s: %s", wait, err))
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(loginBackOff(), ctx), notify); err != nil {
		return errors.Wrap(errLogin, err)
	}

	return nil
}
