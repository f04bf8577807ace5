// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package host

// Family classifies the host OS for driver installation purposes.
type Family string

const (
	// FamilyDebian covers Debian proper.
	FamilyDebian Family = "debian"
	// FamilyUbuntu covers Ubuntu releases.
	FamilyUbuntu Family = "ubuntu"
	// FamilyUnsupported covers everything else. No strategy will mutate
	// a host with this family.
	FamilyUnsupported Family = "unsupported"
)

// ParseFamily maps an os-release ID to a Family.
func ParseFamily(id string) Family {
	switch id {
	case "debian":
		return FamilyDebian
	case "ubuntu":
		return FamilyUbuntu
	default:
		return FamilyUnsupported
	}
}

// Profile describes the host environment. It is computed once at startup
// and immutable afterward.
type Profile struct {
	Family   Family `json:"family" yaml:"family"`
	Codename string `json:"codename" yaml:"codename"`
	HasGPU   bool   `json:"hasGpu" yaml:"hasGpu"`
}

// Supported reports whether a driver strategy may run on this host.
func (p Profile) Supported() bool {
	return p.Family == FamilyDebian || p.Family == FamilyUbuntu
}
