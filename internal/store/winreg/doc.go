// Package winreg is the Windows registry backend. It is only built on Windows.
package winreg
