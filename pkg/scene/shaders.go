package scene

// Lit, textured solid. Lighting happens per fragment in view space.
const (
	litVertexShader = `uniform mat4 u_MVPMatrix;
uniform mat4 u_MVMatrix;

attribute vec4 a_Position;
attribute vec3 a_Normal;
attribute vec2 a_TexCoordinate;

varying vec3 v_Position_View;
varying vec3 v_Normal_View;
varying vec2 v_TexCoordinate;

#pragma kernel lit
`

	litFragmentShader = `precision mediump float;

uniform sampler2D u_Texture;
uniform vec3 u_LightDirection_View;
uniform vec3 u_LightColor;
uniform vec3 u_AmbientLightColor;

varying vec3 v_Position_View;
varying vec3 v_Normal_View;
varying vec2 v_TexCoordinate;

#pragma kernel lit
`
)

// Single flat color, used for the ground and the shadow.
const (
	flatVertexShader = `uniform mat4 u_MVPMatrix;
attribute vec4 a_Position;

#pragma kernel transform
`

	flatFragmentShader = `precision mediump float;
uniform vec4 u_Color;

#pragma kernel flat
`
)

// Per-vertex color, no lighting.
const (
	colorVertexShader = `uniform mat4 u_MVPMatrix;
attribute vec4 a_Position;
attribute vec4 a_Color;
varying vec4 v_Color;

#pragma kernel color
`

	colorFragmentShader = `precision mediump float;
varying vec4 v_Color;

#pragma kernel color
`
)
