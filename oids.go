// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package berval

// Roots of commonly used OBJECT IDENTIFIER branches. Specific identifiers are
// derived with [ObjectIdentifier.SubBranch].
var (
	OIDMemberBody    = MustObjectIdentifier(1, 2)
	OIDUS            = OIDMemberBody.SubBranch(840)
	OIDRSADSI        = OIDUS.SubBranch(113549)
	OIDPKCS          = OIDRSADSI.SubBranch(1)
	OIDPKCS1         = OIDPKCS.SubBranch(1)
	OIDPKCS7         = OIDPKCS.SubBranch(7)
	OIDPKCS9         = OIDPKCS.SubBranch(9)
	OIDX500          = MustObjectIdentifier(2, 5)
	OIDAttributeType = OIDX500.SubBranch(4)
	OIDCertExtension = OIDX500.SubBranch(29)
	OIDPKIX          = MustObjectIdentifier(1, 3, 6, 1, 5, 5, 7)
)

// Some identifiers frequently found in certificates.
var (
	OIDRSAEncryption    = OIDPKCS1.SubBranch(1)
	OIDSHA256WithRSA    = OIDPKCS1.SubBranch(11)
	OIDEmailAddress     = OIDPKCS9.SubBranch(1)
	OIDCommonName       = OIDAttributeType.SubBranch(3)
	OIDCountryName      = OIDAttributeType.SubBranch(6)
	OIDOrganizationName = OIDAttributeType.SubBranch(10)
	OIDSubjectAltName   = OIDCertExtension.SubBranch(17)
	OIDBasicConstraints = OIDCertExtension.SubBranch(19)
	OIDKeyUsage         = OIDCertExtension.SubBranch(15)
)
