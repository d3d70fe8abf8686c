/*
 * Copyright 2025 Candor Operations Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/candorops/netsentry/pkg/models"
)

const (
	oidSysDescr = ".1.3.6.1.2.1.1.1.0"
	oidSysName  = ".1.3.6.1.2.1.1.5.0"

	defaultSNMPPort    = 161
	defaultSNMPTimeout = 2 * time.Second
	snmpRetries        = 1
)

// SNMPLookup resolves device vendor and hostname with an SNMPv2c system
// query. Each Lookup dials fresh: scan targets are arbitrary hosts, so a
// persistent session per device is not worth holding.
type SNMPLookup struct {
	community string
	port      uint16
	timeout   time.Duration
}

// NewSNMPLookup builds a lookup from pipeline config, or nil when SNMP
// enrichment is disabled.
func NewSNMPLookup(cfg *models.PipelineConfig) *SNMPLookup {
	if !cfg.SNMPLookup {
		return nil
	}

	l := &SNMPLookup{
		community: cfg.SNMPCommunity,
		port:      cfg.SNMPPort,
		timeout:   cfg.SNMPTimeout.Std(),
	}

	if l.community == "" {
		l.community = "public"
	}

	if l.port == 0 {
		l.port = defaultSNMPPort
	}

	if l.timeout <= 0 {
		l.timeout = defaultSNMPTimeout
	}

	return l
}

// Lookup queries sysDescr and sysName from the target.
func (l *SNMPLookup) Lookup(ctx context.Context, ip string) (vendor, hostname string, err error) {
	client := &gosnmp.GoSNMP{
		Target:             ip,
		Port:               l.port,
		Community:          l.community,
		Version:            gosnmp.Version2c,
		Timeout:            l.timeout,
		Retries:            snmpRetries,
		MaxOids:            gosnmp.MaxOids,
		ExponentialTimeout: true,
		Context:            ctx,
	}

	if err := client.Connect(); err != nil {
		return "", "", fmt.Errorf("snmp connect to %s failed: %w", ip, err)
	}
	defer client.Conn.Close()

	result, err := client.Get([]string{oidSysDescr, oidSysName})
	if err != nil {
		return "", "", fmt.Errorf("snmp get from %s failed: %w", ip, err)
	}

	for _, v := range result.Variables {
		value := pduString(v)
		if value == "" {
			continue
		}

		switch v.Name {
		case oidSysDescr:
			vendor = vendorFromDescr(value)
		case oidSysName:
			hostname = value
		}
	}

	return vendor, hostname, nil
}

func pduString(pdu gosnmp.SnmpPDU) string {
	switch pdu.Type {
	case gosnmp.OctetString:
		if b, ok := pdu.Value.([]byte); ok {
			return strings.TrimSpace(string(b))
		}
	default:
	}

	if s, ok := pdu.Value.(string); ok {
		return strings.TrimSpace(s)
	}

	return ""
}

// vendorFromDescr extracts a vendor name from a sysDescr string. The first
// word is almost always the vendor or product family.
func vendorFromDescr(descr string) string {
	fields := strings.Fields(descr)
	if len(fields) == 0 {
		return ""
	}

	return strings.Trim(fields[0], ",;")
}
