// Package collector runs the multi-session BSS collection: one conductor
// session for the directory and AP index, then one session per controller.
package collector

import (
	"context"
	"time"

	"github.com/newtron-network/apbss/pkg/aos"
	"github.com/newtron-network/apbss/pkg/model"
	"github.com/newtron-network/apbss/pkg/util"
)

// BSS table show command and its root collection.
const (
	BSSTableCommand = "show ap bss-table details"
	BSSTable        = "Aruba AP BSS Table"
)

// "show ap bss-table details" columns.
const (
	colBSS    = "bss"
	colESS    = "ess"
	colAPName = "ap name"
)

// logoutTimeout bounds the logout issued on the way out, which runs even when
// the collection context is already done.
const logoutTimeout = 10 * time.Second

// Conn is an authenticated device connection. *aos.Session satisfies it.
type Conn interface {
	Host() string
	ShowMapping(ctx context.Context, command string) (aos.Mapping, error)
	ShowRows(ctx context.Context, command, table string) ([]aos.Row, error)
	Close(ctx context.Context) error
}

// Opener logs in to the device at host.
type Opener func(ctx context.Context, host string) (Conn, error)

// NewOpener returns an Opener that logs in to any host with base's
// credentials, port, API version and TLS policy.
func NewOpener(base aos.Target, opts ...aos.Option) Opener {
	return func(ctx context.Context, host string) (Conn, error) {
		s, err := aos.Open(ctx, base.WithHost(host), opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// APLookup resolves an AP name to its inventory record.
type APLookup interface {
	Lookup(name string) (model.AccessPoint, bool)
}

// ControllerResult is the outcome of collecting one controller.
type ControllerResult struct {
	Device model.Device
	Rows   []model.ReportRow

	// Attempted counts BSS entries returned by the controller, joined or not.
	Attempted int
	Misses    []*util.JoinError

	Skip      model.SkipReason
	Err       error
	LogoutErr error
}

// JoinMisses returns the number of BSS entries dropped for an unknown AP.
func (r *ControllerResult) JoinMisses() int {
	return len(r.Misses)
}

// Skipped reports whether the controller contributed nothing because it was
// down, refused login, or its BSS table could not be read.
func (r *ControllerResult) Skipped() bool {
	return r.Skip != model.SkipNone
}

// CollectController opens a session to dev, reads its BSS table, joins each
// entry against idx and closes the session. Failures are recorded on the
// result and never returned: one controller cannot abort the run.
func CollectController(ctx context.Context, dev model.Device, idx APLookup, open Opener) (res ControllerResult) {
	res.Device = dev
	log := util.WithDevice(dev.Name).WithField("ip", dev.IPAddress)

	if !dev.IsUp() {
		res.Skip = model.SkipDeviceDown
		log.Infof("Controller is %s, skipping", dev.Status)
		return res
	}

	log.Debugf("Collecting %s", dev.String())
	conn, err := open(ctx, dev.IPAddress)
	if err != nil {
		res.Skip = model.SkipLoginFailed
		res.Err = err
		log.Warnf("Login failed, skipping: %v", err)
		return res
	}
	defer func() {
		if err := closeConn(ctx, conn); err != nil {
			res.LogoutErr = err
			log.Warn(err)
		}
	}()

	entries, err := conn.ShowRows(ctx, BSSTableCommand, BSSTable)
	if err != nil {
		res.Skip = model.SkipCollectionFailed
		res.Err = err
		log.Warnf("BSS table collection failed: %v", err)
		return res
	}

	for _, e := range entries {
		bss := model.BssEntry{
			BSS:    e.Get(colBSS),
			ESS:    e.Get(colESS),
			APName: e.Get(colAPName),
		}
		res.Attempted++

		ap, ok := idx.Lookup(bss.APName)
		if !ok {
			miss := &util.JoinError{Controller: dev.Name, BSS: bss.BSS, APName: bss.APName}
			res.Misses = append(res.Misses, miss)
			log.Warn(miss)
			continue
		}
		res.Rows = append(res.Rows, model.NewReportRow(bss, ap))
	}

	log.Infof("Processed %d entries (%d unmatched)", len(res.Rows), res.JoinMisses())
	return res
}

// closeConn logs out with a context that survives cancellation of ctx.
func closeConn(ctx context.Context, conn Conn) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
	defer cancel()
	return conn.Close(ctx)
}
