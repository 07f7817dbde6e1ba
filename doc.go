// Package hardenaudit audits a Linux host against a small hardening baseline.
//
// hardenaudit checks the firewall, sshd settings, account database
// permissions, running services and rootkit indicators, writes a plain-text
// report and classifies the result into a compliance tier.
package hardenaudit
